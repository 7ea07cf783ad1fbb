package sqlinline

const QSelectMoodboardItem = `--sql f70d7285-6fb4-465a-90a7-8bc40dc6cc28
select id, moodboard_id, source, url, original_url, enhanced_url,
       enhancement_status, showing_original, position, updated_at
from moodboard_items
where id = $1::text;
`

// QPatchMoodboardItem leaves a column untouched when its parameter is null.
const QPatchMoodboardItem = `--sql 5a496e1d-226e-4c2f-beec-cbfeab60f23d
update moodboard_items set
    url = coalesce($2::text, url),
    original_url = coalesce($3::text, original_url),
    enhanced_url = coalesce($4::text, enhanced_url),
    enhancement_status = coalesce($5::text, enhancement_status),
    showing_original = coalesce($6::boolean, showing_original),
    source = coalesce($7::text, source),
    updated_at = now()
where id = $1::text
returning id, moodboard_id, source, url, original_url, enhanced_url,
          enhancement_status, showing_original, position, updated_at;
`

const QListMoodboardItems = `--sql a083970a-73a9-484f-af28-4c86402b8bf1
select id, moodboard_id, source, url, original_url, enhanced_url,
       enhancement_status, showing_original, position, updated_at
from moodboard_items
where moodboard_id = $1::text
order by position asc, id asc;
`
