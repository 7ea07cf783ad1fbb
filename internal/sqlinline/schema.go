package sqlinline

// Schema lists the idempotent DDL applied by cmd/migrate, in order.
var Schema = []string{
	QCreateMoodboardItems,
	QCreateMoodboardEnhancements,
	QCreateUserCredits,
	QCreateEnhancementTasks,
	QCreateIntegrationTokens,
}

const QCreateMoodboardItems = `--sql 8c3a436a-c7e9-4ecb-9c15-d9cc6e45defc
create table if not exists moodboard_items (
    id text primary key,
    moodboard_id text not null,
    source text not null default 'upload',
    url text not null,
    original_url text not null default '',
    enhanced_url text not null default '',
    enhancement_status text not null default 'idle',
    showing_original boolean not null default false,
    position int not null default 0,
    updated_at timestamptz not null default now()
);
create index if not exists moodboard_items_moodboard_idx on moodboard_items (moodboard_id, position);
`

const QCreateMoodboardEnhancements = `--sql df7dc065-4233-4938-9413-e95e889734cd
create table if not exists moodboard_enhancements (
    id text primary key,
    moodboard_id text not null,
    item_id text not null,
    original_url text not null,
    enhanced_url text not null,
    enhancement_type text not null,
    provider text not null,
    task_id text,
    cost int not null,
    attribution text not null default '',
    created_at timestamptz not null default now()
);
create index if not exists moodboard_enhancements_moodboard_idx on moodboard_enhancements (moodboard_id, created_at);
`

const QCreateUserCredits = `--sql 17a62d3b-061c-4435-91a4-5f2e931d1b9b
create table if not exists user_credits (
    user_id text primary key,
    current int not null default 0,
    monthly int not null default 0,
    tier text not null default 'free',
    updated_at timestamptz not null default now()
);
`

const QCreateEnhancementTasks = `--sql dac7eeb5-ff82-47d5-a19d-71228cc1e622
create table if not exists enhancement_tasks (
    id text primary key,
    task_id text,
    user_id text not null,
    moodboard_id text not null default '',
    item_id text not null,
    provider text not null,
    enhancement_type text not null,
    prompt text not null,
    strength double precision not null,
    input_url text not null,
    status text not null,
    result_url text,
    error_kind text,
    error_detail text,
    cost int not null default 0,
    created_at timestamptz not null default now(),
    updated_at timestamptz not null default now()
);
create index if not exists enhancement_tasks_polling_idx on enhancement_tasks (updated_at) where status = 'polling';
`

const QCreateIntegrationTokens = `--sql c2515c43-7ab0-436a-bdd9-020ad3cc12b2
create table if not exists integration_tokens (
    provider text primary key,
    token text not null,
    properties jsonb not null default '{}'::jsonb,
    created_at timestamptz not null default now(),
    updated_at timestamptz not null default now()
);
`
