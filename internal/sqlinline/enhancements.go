package sqlinline

const QInsertEnhancementLog = `--sql 554a9b41-6a39-43d3-a6a3-93fa813f6d8c
insert into moodboard_enhancements (
    id, moodboard_id, item_id, original_url, enhanced_url,
    enhancement_type, provider, task_id, cost, attribution, created_at
) values (
    $1::text, $2::text, $3::text, $4::text, $5::text,
    $6::text, $7::text, nullif($8::text, ''), $9::int, $10::text, $11::timestamptz
);
`

const QSumEnhancementCost = `--sql 5aab78a0-1d50-4737-b8ce-78ac2b7db133
select coalesce(sum(cost), 0)::int
from moodboard_enhancements
where moodboard_id = $1::text;
`

const QListEnhancementLog = `--sql 3a88cdac-3c38-4f8a-9fe0-ebec71c1fd4a
select id, moodboard_id, item_id, original_url, enhanced_url,
       enhancement_type, provider, coalesce(task_id, ''), cost, attribution, created_at
from moodboard_enhancements
where moodboard_id = $1::text
order by created_at asc, id asc;
`
