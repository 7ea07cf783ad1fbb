package sqlinline

const QSelectIntegrationToken = `--sql b378a1db-cddf-4450-b407-e57c51e340d5
select token
from integration_tokens
where provider = $1::text;
`

const QUpsertIntegrationToken = `--sql 24713a8b-ea38-4137-a8b7-611389d0df5b
insert into integration_tokens (provider, token, properties, created_at, updated_at)
values ($1::text, $2::text, coalesce($3::jsonb, '{}'::jsonb), now(), now())
on conflict (provider) do update set
    token = excluded.token,
    properties = excluded.properties,
    updated_at = now();
`
