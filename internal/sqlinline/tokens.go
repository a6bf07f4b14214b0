package sqlinline

// Service-level integration tokens (e.g. the shared OpenAI key used when
// a device has no personal credential).

const QSelectIntegrationToken = `--sql 00435b47-486b-4698-9bde-aa63295c529f
select token
from integration_tokens
where provider = $1::text
limit 1;
`

const QUpsertIntegrationToken = `--sql 9f99f611-736d-45a0-a600-69adfe6155b0
insert into integration_tokens (id, provider, token, created_at, updated_at)
values (gen_random_uuid(), $1::text, $2::text, now(), now())
on conflict (provider) do update set
    token = excluded.token,
    updated_at = now();
`
