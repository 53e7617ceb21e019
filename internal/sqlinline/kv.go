package sqlinline

// QEnsureKVTable creates the key/value table backing the postgres store.
const QEnsureKVTable = `--sql 5834cd9c-0608-4a09-86e7-7e484968c577
create table if not exists studio_kv (
    namespace  text        not null,
    key        text        not null,
    value      bytea       not null,
    updated_at timestamptz not null default now(),
    primary key (namespace, key)
)`

const QSelectKV = `--sql 5b7655f9-6691-4bab-baf7-416686288407
select value
from studio_kv
where namespace = $1 and key = $2`

// QUpsertKV is last-write-wins.
const QUpsertKV = `--sql 39679430-2f15-4133-b3d6-7a5959ded712
insert into studio_kv (namespace, key, value, updated_at)
values ($1, $2, $3, now())
on conflict (namespace, key) do update set
    value = excluded.value,
    updated_at = now()`

const QDeleteKV = `--sql a58e4fa3-b2f5-4b5d-b930-28c7f0034e79
delete from studio_kv
where namespace = $1 and key = $2`
