package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"
)

const (
	FlowPredict   = "predict"
	FlowRecognize = "recognize"
)

// Entry: одна завершённая отправка (успех или ошибка).
type Entry struct {
	ID         int64
	CreatedAt  time.Time
	ChatID     int64
	Flow       string
	Engine     string
	Label      string
	Slug       string
	Confidence *float64
	Extracted  []string
	Error      string
}

func (e Entry) Failed() bool { return e.Error != "" }

type HistoryRepo struct{ DB *sql.DB }

func NewHistoryRepo(db *sql.DB) *HistoryRepo { return &HistoryRepo{DB: db} }

const schema = `
create table if not exists submissions (
    id          bigserial primary key,
    created_at  timestamptz not null default now(),
    chat_id     bigint not null,
    flow        text not null,
    engine      text not null default '',
    label       text,
    slug        text,
    confidence  double precision,
    extracted   jsonb,
    error       text
);
create index if not exists submissions_chat_created_idx on submissions (chat_id, created_at desc);`

// EnsureSchema идемпотентна, вызывается на старте.
func (r *HistoryRepo) EnsureSchema(ctx context.Context) error {
	_, err := r.DB.ExecContext(ctx, schema)
	return err
}

func (r *HistoryRepo) Insert(ctx context.Context, e Entry) (int64, error) {
	var extracted []byte
	if e.Extracted != nil {
		extracted, _ = json.Marshal(e.Extracted)
	}
	const q = `
insert into submissions(chat_id, flow, engine, label, slug, confidence, extracted, error)
values ($1,$2,$3,$4,$5,$6,$7,$8)
returning id`
	var id int64
	err := r.DB.QueryRowContext(ctx, q,
		e.ChatID, e.Flow, e.Engine,
		nullString(e.Label), nullString(e.Slug), e.Confidence, extracted, nullString(e.Error),
	).Scan(&id)
	return id, err
}

// Recent: последние limit записей чата, свежие первыми.
func (r *HistoryRepo) Recent(ctx context.Context, chatID int64, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 10
	}
	const q = `
select id, created_at, chat_id, flow, engine,
       coalesce(label,''), coalesce(slug,''), confidence, extracted, coalesce(error,'')
from submissions
where chat_id = $1
order by created_at desc, id desc
limit $2`
	rows, err := r.DB.QueryContext(ctx, q, chatID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var (
			e    Entry
			conf sql.NullFloat64
			js   []byte
		)
		if err := rows.Scan(&e.ID, &e.CreatedAt, &e.ChatID, &e.Flow, &e.Engine,
			&e.Label, &e.Slug, &conf, &js, &e.Error); err != nil {
			return nil, err
		}
		if conf.Valid {
			v := conf.Float64
			e.Confidence = &v
		}
		if len(js) > 0 {
			// битый JSON не роняет историю
			_ = json.Unmarshal(js, &e.Extracted)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
