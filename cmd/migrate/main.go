// Command migrate applies the event archive schema. It is idempotent and
// safe to run on every deploy.
package main

import (
	"database/sql"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

const schema = `
create table if not exists relief_events (
	id          uuid primary key,
	kind        text not null,
	campaign_id bigint,
	request_id  bigint,
	actor       text not null,
	amount_int  bigint not null default 0,
	name        text not null default '',
	location    text not null default '',
	resource    text not null default '',
	occurred_at timestamptz not null
);

create index if not exists relief_events_occurred_at_idx on relief_events (occurred_at desc);
create index if not exists relief_events_campaign_idx on relief_events (campaign_id) where campaign_id is not null;
`

func main() {
	_ = godotenv.Load()

	dsn := flag.String("dsn", os.Getenv("DATABASE_URL"), "postgres connection string")
	flag.Parse()

	if *dsn == "" {
		fmt.Fprintln(os.Stderr, "migrate: DATABASE_URL or -dsn is required")
		os.Exit(1)
	}

	db, err := sql.Open("postgres", *dsn)
	if err != nil {
		fmt.Fprintf(os.Stderr, "migrate: open database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	if _, err := db.Exec(schema); err != nil {
		fmt.Fprintf(os.Stderr, "migrate: apply schema: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("relief_events schema applied")
}
