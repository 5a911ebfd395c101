// Package sqlinline holds the inline SQL statements of the service. Every
// statement starts with a `--sql <uuid>` marker line so the SQLRunner can
// log executions without echoing query text.
package sqlinline

const QInsertEvent = `--sql 3f68b1ce-55f7-4e0f-9c2b-8f12a6d04c71
insert into relief_events(id, kind, campaign_id, request_id, actor, amount_int, name, location, resource, occurred_at)
values ($1::uuid, $2::text, nullif($3::bigint, 0), nullif($4::bigint, 0), $5::text, $6::bigint, $7::text, $8::text, $9::text, $10::timestamptz);
`

const QListRecentEvents = `--sql b0a4fd12-7c2e-49d3-8a61-dd5e90c417b5
select id, kind, coalesce(campaign_id, 0), coalesce(request_id, 0), actor, amount_int, name, location, resource, occurred_at
from relief_events
order by occurred_at desc
limit $1::int;
`
