package store

// Schema v1 - playlist warehouse star schema.
// Foreign keys are switched on in the connection DSN, not here: the pragma
// is a no-op inside the migration transaction.
const schemaV1 = `
-- Pipeline bookkeeping (key/value, no fixed meaning)
CREATE TABLE IF NOT EXISTS etl_state (
  pipeline_name TEXT NOT NULL,
  state_key     TEXT NOT NULL,
  state_value   TEXT,
  updated_at    TEXT NOT NULL DEFAULT (datetime('now')),
  PRIMARY KEY (pipeline_name, state_key)
);

-- Dimensions
CREATE TABLE IF NOT EXISTS dim_playlist (
  playlist_id   TEXT PRIMARY KEY,
  name          TEXT,
  owner_id      TEXT,
  is_public     INTEGER,
  is_collab     INTEGER,
  snapshot_id   TEXT,
  tracks_total  INTEGER,
  updated_at    TEXT NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS dim_album (
  album_id          TEXT PRIMARY KEY,
  name              TEXT,
  release_date      TEXT,
  release_precision TEXT,
  total_tracks      INTEGER,
  album_type        TEXT,
  updated_at        TEXT NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS dim_artist (
  artist_id     TEXT PRIMARY KEY,
  name          TEXT,
  popularity    INTEGER,
  followers     INTEGER,
  updated_at    TEXT NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS dim_track (
  track_id      TEXT PRIMARY KEY,
  name          TEXT,
  album_id      TEXT,
  duration_ms   INTEGER,
  explicit      INTEGER,
  popularity    INTEGER,
  track_number  INTEGER,
  disc_number   INTEGER,
  is_local      INTEGER,
  is_playable   INTEGER,
  updated_at    TEXT NOT NULL DEFAULT (datetime('now')),
  FOREIGN KEY (album_id) REFERENCES dim_album(album_id)
);

CREATE TABLE IF NOT EXISTS dim_audio_features (
  track_id         TEXT PRIMARY KEY,
  danceability     REAL,
  energy           REAL,
  key              INTEGER,
  loudness         REAL,
  mode             INTEGER,
  speechiness      REAL,
  acousticness     REAL,
  instrumentalness REAL,
  liveness         REAL,
  valence          REAL,
  tempo            REAL,
  time_signature   INTEGER,
  updated_at       TEXT NOT NULL DEFAULT (datetime('now')),
  FOREIGN KEY (track_id) REFERENCES dim_track(track_id)
);

-- Ordered many-to-many between tracks and artists
CREATE TABLE IF NOT EXISTS bridge_track_artist (
  track_id      TEXT NOT NULL,
  artist_id     TEXT NOT NULL,
  artist_order  INTEGER NOT NULL,
  PRIMARY KEY (track_id, artist_id),
  FOREIGN KEY (track_id) REFERENCES dim_track(track_id),
  FOREIGN KEY (artist_id) REFERENCES dim_artist(artist_id)
);

-- Calendar for added_at
CREATE TABLE IF NOT EXISTS dim_date (
  date_id     INTEGER PRIMARY KEY,   -- YYYYMMDD
  date        TEXT NOT NULL UNIQUE,  -- YYYY-MM-DD
  year        INTEGER NOT NULL,
  month       INTEGER NOT NULL,
  day         INTEGER NOT NULL,
  day_of_week INTEGER NOT NULL
);

-- Grain: one track at one position in one playlist snapshot
CREATE TABLE IF NOT EXISTS fact_playlist_track (
  playlist_id   TEXT NOT NULL,
  snapshot_id   TEXT NOT NULL,
  position      INTEGER NOT NULL,
  track_id      TEXT,
  added_at      TEXT,
  added_by_id   TEXT,
  is_local      INTEGER,
  extracted_at  TEXT NOT NULL DEFAULT (datetime('now')),
  PRIMARY KEY (playlist_id, snapshot_id, position),
  FOREIGN KEY (playlist_id) REFERENCES dim_playlist(playlist_id),
  FOREIGN KEY (track_id) REFERENCES dim_track(track_id)
);

CREATE INDEX IF NOT EXISTS idx_fact_track_id ON fact_playlist_track(track_id);
CREATE INDEX IF NOT EXISTS idx_fact_playlist ON fact_playlist_track(playlist_id);
`

// Tables lists the tables the schema creates, parents before children
var Tables = []string{
	"etl_state",
	"dim_playlist",
	"dim_album",
	"dim_artist",
	"dim_track",
	"dim_audio_features",
	"bridge_track_artist",
	"dim_date",
	"fact_playlist_track",
}

// Indexes lists the secondary indexes the schema creates
var Indexes = []string{
	"idx_fact_track_id",
	"idx_fact_playlist",
}
