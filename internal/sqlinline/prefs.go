package sqlinline

// Per-device preference records: one row per (device, key). The access
// engine's tier, trial-start, credential and subscription stores each map
// to a single key.

const QUpsertDevicePref = `--sql 56af725a-7f28-428a-8a40-b588474ec312
insert into device_prefs (device_id, pref_key, pref_value, updated_at)
values ($1::text, $2::text, $3::text, now())
on conflict (device_id, pref_key) do update set
    pref_value = excluded.pref_value,
    updated_at = now();
`

const QSelectDevicePref = `--sql d78b4aec-a4ed-4f13-82a6-d4efe6f5216d
select pref_value
from device_prefs
where device_id = $1::text and pref_key = $2::text
limit 1;
`

const QDeleteDevicePref = `--sql d76594ad-30b3-4b49-a6fa-5eb9dca48654
delete from device_prefs
where device_id = $1::text and pref_key = $2::text;
`

const QListDevicesWithPref = `--sql e2118f51-9ad8-4b8a-a5ec-c32c51fb8233
select device_id, pref_value
from device_prefs
where pref_key = $1::text and pref_value <> ''
order by device_id asc;
`
