package storage

// schemaV1 is the initial schema: profiles, the folder/bookmark tree, tags,
// sync runs, and the append-only scan result tables.
//
// Cascade rules: deleting a profile removes its folders and orphans its
// bookmarks; deleting a folder removes descendant folders and orphans the
// bookmarks that pointed at it.
const schemaV1 = `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER PRIMARY KEY
);

CREATE TABLE IF NOT EXISTS browser_profiles (
	id             TEXT PRIMARY KEY NOT NULL,
	browser        TEXT NOT NULL,
	profile_dir    TEXT NOT NULL,
	display_name   TEXT,
	path           TEXT NOT NULL,
	enabled        INTEGER NOT NULL DEFAULT 1,
	last_synced_at TEXT,
	created_at     TEXT NOT NULL,
	UNIQUE (browser, profile_dir)
);

CREATE TABLE IF NOT EXISTS folders (
	id           TEXT PRIMARY KEY NOT NULL,
	name         TEXT NOT NULL,
	parent_id    TEXT,
	profile_id   TEXT,
	browser_id   TEXT,
	browser_path TEXT NOT NULL DEFAULT '',
	position     INTEGER NOT NULL DEFAULT 0,
	created_at   TEXT NOT NULL,
	FOREIGN KEY (parent_id) REFERENCES folders(id) ON DELETE CASCADE,
	FOREIGN KEY (profile_id) REFERENCES browser_profiles(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_folders_parent ON folders(parent_id);
CREATE INDEX IF NOT EXISTS idx_folders_profile ON folders(profile_id);
CREATE INDEX IF NOT EXISTS idx_folders_browser_id ON folders(profile_id, browser_id);

CREATE TABLE IF NOT EXISTS bookmarks (
	id               TEXT PRIMARY KEY NOT NULL,
	url              TEXT NOT NULL,
	title            TEXT NOT NULL DEFAULT '',
	description      TEXT,
	notes            TEXT,
	folder_id        TEXT,
	profile_id       TEXT,
	browser_id       TEXT,
	browser_added_at TEXT,
	position         INTEGER NOT NULL DEFAULT 0,
	created_at       TEXT NOT NULL,
	updated_at       TEXT NOT NULL,
	FOREIGN KEY (folder_id) REFERENCES folders(id) ON DELETE SET NULL,
	FOREIGN KEY (profile_id) REFERENCES browser_profiles(id) ON DELETE SET NULL
);

CREATE INDEX IF NOT EXISTS idx_bookmarks_url ON bookmarks(url);
CREATE INDEX IF NOT EXISTS idx_bookmarks_folder ON bookmarks(folder_id);
CREATE INDEX IF NOT EXISTS idx_bookmarks_profile ON bookmarks(profile_id);
CREATE INDEX IF NOT EXISTS idx_bookmarks_browser_id ON bookmarks(profile_id, browser_id);

CREATE TABLE IF NOT EXISTS tags (
	id         TEXT PRIMARY KEY NOT NULL,
	name       TEXT NOT NULL UNIQUE,
	created_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS bookmark_tags (
	bookmark_id TEXT NOT NULL,
	tag_id      TEXT NOT NULL,
	PRIMARY KEY (bookmark_id, tag_id),
	FOREIGN KEY (bookmark_id) REFERENCES bookmarks(id) ON DELETE CASCADE,
	FOREIGN KEY (tag_id) REFERENCES tags(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS sync_runs (
	id                TEXT PRIMARY KEY NOT NULL,
	profile_id        TEXT,
	status            TEXT NOT NULL,
	folders_added     INTEGER NOT NULL DEFAULT 0,
	folders_skipped   INTEGER NOT NULL DEFAULT 0,
	bookmarks_added   INTEGER NOT NULL DEFAULT 0,
	bookmarks_skipped INTEGER NOT NULL DEFAULT 0,
	error_message     TEXT,
	started_at        TEXT NOT NULL,
	finished_at       TEXT,
	FOREIGN KEY (profile_id) REFERENCES browser_profiles(id) ON DELETE SET NULL
);

CREATE TABLE IF NOT EXISTS dead_links (
	id            TEXT PRIMARY KEY NOT NULL,
	bookmark_id   TEXT NOT NULL,
	run_id        TEXT NOT NULL,
	status_code   INTEGER,
	error_message TEXT NOT NULL DEFAULT '',
	checked_at    TEXT NOT NULL,
	FOREIGN KEY (bookmark_id) REFERENCES bookmarks(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_dead_links_bookmark ON dead_links(bookmark_id);
CREATE INDEX IF NOT EXISTS idx_dead_links_run ON dead_links(run_id);

CREATE TABLE IF NOT EXISTS duplicate_groups (
	id             TEXT PRIMARY KEY NOT NULL,
	run_id         TEXT NOT NULL,
	normalized_url TEXT NOT NULL,
	match_type     TEXT NOT NULL,
	similarity     REAL NOT NULL DEFAULT 1.0,
	created_at     TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_duplicate_groups_run ON duplicate_groups(run_id);

CREATE TABLE IF NOT EXISTS duplicate_group_members (
	group_id    TEXT NOT NULL,
	bookmark_id TEXT NOT NULL,
	PRIMARY KEY (group_id, bookmark_id),
	FOREIGN KEY (group_id) REFERENCES duplicate_groups(id) ON DELETE CASCADE,
	FOREIGN KEY (bookmark_id) REFERENCES bookmarks(id) ON DELETE CASCADE
);

CREATE VIRTUAL TABLE IF NOT EXISTS bookmarks_fts USING fts5(
	title,
	url,
	description,
	notes,
	content='bookmarks',
	content_rowid='rowid'
);

CREATE TRIGGER IF NOT EXISTS bookmarks_ai AFTER INSERT ON bookmarks BEGIN
	INSERT INTO bookmarks_fts(rowid, title, url, description, notes)
	VALUES (new.rowid, new.title, new.url, new.description, new.notes);
END;

CREATE TRIGGER IF NOT EXISTS bookmarks_ad AFTER DELETE ON bookmarks BEGIN
	INSERT INTO bookmarks_fts(bookmarks_fts, rowid, title, url, description, notes)
	VALUES ('delete', old.rowid, old.title, old.url, old.description, old.notes);
END;

CREATE TRIGGER IF NOT EXISTS bookmarks_au AFTER UPDATE ON bookmarks BEGIN
	INSERT INTO bookmarks_fts(bookmarks_fts, rowid, title, url, description, notes)
	VALUES ('delete', old.rowid, old.title, old.url, old.description, old.notes);
	INSERT INTO bookmarks_fts(rowid, title, url, description, notes)
	VALUES (new.rowid, new.title, new.url, new.description, new.notes);
END;

CREATE VIEW IF NOT EXISTS vw_bookmark_locations AS
SELECT
	b.id AS bookmark_id,
	b.title,
	b.url,
	b.browser_id,
	f.name AS folder_name,
	f.browser_path AS folder_path,
	bp.id AS profile_id,
	bp.browser,
	bp.profile_dir,
	bp.display_name,
	bp.path AS profile_path
FROM bookmarks b
LEFT JOIN folders f ON b.folder_id = f.id
LEFT JOIN browser_profiles bp ON b.profile_id = bp.id;

CREATE VIEW IF NOT EXISTS vw_dead_links AS
SELECT
	dl.id AS dead_link_id,
	dl.run_id,
	dl.status_code,
	dl.error_message,
	dl.checked_at,
	b.id AS bookmark_id,
	b.title,
	b.url,
	f.name AS folder_name,
	bp.browser,
	bp.display_name
FROM dead_links dl
JOIN bookmarks b ON dl.bookmark_id = b.id
LEFT JOIN folders f ON b.folder_id = f.id
LEFT JOIN browser_profiles bp ON b.profile_id = bp.id;

CREATE VIEW IF NOT EXISTS vw_duplicates AS
SELECT
	dg.id AS group_id,
	dg.run_id,
	dg.normalized_url,
	dg.match_type,
	dg.similarity,
	dg.created_at AS detected_at,
	b.id AS bookmark_id,
	b.title,
	b.url,
	f.name AS folder_name,
	bp.browser,
	bp.display_name,
	(SELECT COUNT(*) FROM duplicate_group_members m2
	 WHERE m2.group_id = dg.id) AS group_size
FROM duplicate_groups dg
JOIN duplicate_group_members dgm ON dg.id = dgm.group_id
JOIN bookmarks b ON dgm.bookmark_id = b.id
LEFT JOIN folders f ON b.folder_id = f.id
LEFT JOIN browser_profiles bp ON b.profile_id = bp.id;

INSERT OR REPLACE INTO schema_version (version) VALUES (1);
`
