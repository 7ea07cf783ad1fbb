package sqlinline

const QUpsertEnhancementTask = `--sql 7d01f72f-2604-4a54-8da5-42358f0bfd2a
insert into enhancement_tasks (
    id, task_id, user_id, moodboard_id, item_id, provider, enhancement_type,
    prompt, strength, input_url, status, result_url, error_kind, error_detail,
    cost, created_at, updated_at
) values (
    $1::text, nullif($2::text, ''), $3::text, $4::text, $5::text, $6::text, $7::text,
    $8::text, $9::float8, $10::text, $11::text, nullif($12::text, ''), nullif($13::text, ''), nullif($14::text, ''),
    $15::int, $16::timestamptz, $17::timestamptz
)
on conflict (id) do update set
    task_id = excluded.task_id,
    status = excluded.status,
    result_url = excluded.result_url,
    error_kind = excluded.error_kind,
    error_detail = excluded.error_detail,
    updated_at = excluded.updated_at;
`

// QClaimStaleEnhancementTasks bumps updated_at so a concurrent worker skips
// the same rows until they go stale again.
const QClaimStaleEnhancementTasks = `--sql b55b62a1-59cf-44f1-8fca-b2fb21d7f315
with stale as (
    select id
    from enhancement_tasks
    where status = 'polling'
      and task_id is not null
      and updated_at < now() - make_interval(secs => $1::float8)
    order by updated_at asc
    for update skip locked
    limit $2::int
),
claimed as (
    update enhancement_tasks t
    set updated_at = now()
    from stale
    where t.id = stale.id
    returning t.id, t.task_id, t.user_id, t.moodboard_id, t.item_id, t.provider,
              t.enhancement_type, t.prompt, t.strength, t.input_url, t.status,
              coalesce(t.result_url, ''), coalesce(t.error_kind, ''), coalesce(t.error_detail, ''),
              t.cost, t.created_at, t.updated_at
)
select * from claimed order by updated_at asc, id asc;
`
