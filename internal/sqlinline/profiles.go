package sqlinline

const QUpsertProfile = `--sql c19cb632-28d9-40c7-bc9b-7fbc041cb88a
insert into identity_profiles (id, device_id, name, color, brand, company_context, use_company_context, docs, doc_names, created_at, updated_at)
values ($1::uuid, $2::text, $3::text, $4::text, $5::text, $6::text, $7::boolean, $8::jsonb, $9::jsonb, now(), now())
on conflict (id) do update set
    name = excluded.name,
    color = excluded.color,
    brand = excluded.brand,
    company_context = excluded.company_context,
    use_company_context = excluded.use_company_context,
    docs = excluded.docs,
    doc_names = excluded.doc_names,
    updated_at = now();
`

const QSelectProfileByID = `--sql f180d370-5b1f-408c-93b5-d640265d78f4
select id, device_id, name, color, brand, company_context, use_company_context, docs, doc_names, created_at, updated_at
from identity_profiles
where id = $1::uuid and device_id = $2::text
limit 1;
`

const QListProfilesByDevice = `--sql d7457f48-75ce-4135-9b54-a0db007bded3
select id, device_id, name, color, brand, company_context, use_company_context, docs, doc_names, created_at, updated_at
from identity_profiles
where device_id = $1::text
order by created_at asc;
`

const QCountProfilesByDevice = `--sql 78a24dda-6665-4ee2-bd22-d5320674b200
select count(*)
from identity_profiles
where device_id = $1::text;
`

const QDeleteProfile = `--sql d571145f-0864-43a3-ad0d-afbf3fab8d87
delete from identity_profiles
where id = $1::uuid and device_id = $2::text;
`

const QUpsertCatalog = `--sql 0fa1dd3e-ac6f-4038-a53b-b584c2e570e4
insert into profile_catalogs (profile_id, items, updated_at)
values ($1::uuid, coalesce($2::jsonb, '[]'::jsonb), now())
on conflict (profile_id) do update set
    items = excluded.items,
    updated_at = now();
`

const QSelectCatalog = `--sql d90e6f55-b20f-4f3f-89bb-638140359d13
select items
from profile_catalogs
where profile_id = $1::uuid
limit 1;
`
