package storage

// ContentSchema is the SQL schema for the content database.
const ContentSchema = `
CREATE TABLE IF NOT EXISTS contents (
    id           TEXT PRIMARY KEY,
    template_id  TEXT NOT NULL,
    title        TEXT NOT NULL DEFAULT '',
    slug         TEXT NOT NULL DEFAULT '',
    body         TEXT NOT NULL DEFAULT '',
    metadata     TEXT NOT NULL DEFAULT '{}',
    score        TEXT NOT NULL DEFAULT '{}',
    ai_optimized TEXT NOT NULL DEFAULT '{}',
    status       TEXT NOT NULL DEFAULT 'draft'
                 CHECK(status IN ('draft', 'review', 'optimizing', 'ready', 'published')),
    author       TEXT NOT NULL DEFAULT '',
    tags         TEXT NOT NULL DEFAULT '[]',
    category     TEXT NOT NULL DEFAULT '',
    created_at   TEXT NOT NULL,
    updated_at   TEXT NOT NULL,
    published_at TEXT NULL
);

CREATE INDEX IF NOT EXISTS idx_contents_status ON contents(status);
CREATE INDEX IF NOT EXISTS idx_contents_slug ON contents(slug);
`
