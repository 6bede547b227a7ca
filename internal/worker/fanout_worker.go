package worker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/papergen/papergen-backend/internal/config"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	FanoutBatchSize    = 50
	FanoutBatchTimeout = 2 * time.Second
	FanoutPollTimeout  = 1 * time.Second
)

// FanoutWorker consumes lesson change events and refreshes the lesson
// entries embedded in classes: the current name and exam id list of each
// touched lesson are copied into every class that carries it. The exam
// tables stay canonical; classes converge shortly after a change.
type FanoutWorker struct {
	pool *pgxpool.Pool
	rdb  *redis.Client
	log  zerolog.Logger
}

func NewFanoutWorker(pool *pgxpool.Pool, rdb *redis.Client, log zerolog.Logger) *FanoutWorker {
	return &FanoutWorker{
		pool: pool,
		rdb:  rdb,
		log:  log.With().Str("component", "fanout_worker").Logger(),
	}
}

type fanoutPayload struct {
	LessonID string `json:"lesson_id"`
}

func (w *FanoutWorker) Start(ctx context.Context) {
	w.log.Info().Msg("FanoutWorker started")

	batch := make([]*fanoutPayload, 0, FanoutBatchSize)
	lastFlush := time.Now()

	for {
		if len(batch) > 0 &&
			(len(batch) >= FanoutBatchSize || time.Since(lastFlush) >= FanoutBatchTimeout) {

			w.flushSafe(ctx, batch)
			batch = batch[:0]
			lastFlush = time.Now()
		}

		select {
		case <-ctx.Done():
			w.log.Info().Msg("Shutdown requested. Flushing remaining batch...")
			w.flushSafe(context.Background(), batch)
			return

		default:
			item, err := w.rdb.BLPop(ctx, FanoutPollTimeout, config.WorkerKey.LessonFanoutQueue).Result()
			if err != nil {
				if err != redis.Nil && ctx.Err() == nil {
					w.log.Error().Err(err).Msg("BLPop error")
				}
				continue
			}

			if len(item) < 2 {
				continue
			}

			var p fanoutPayload
			if err := json.Unmarshal([]byte(item[1]), &p); err != nil {
				w.log.Error().Err(err).Msg("Invalid JSON payload")
				continue
			}

			batch = append(batch, &p)
		}
	}
}

func (w *FanoutWorker) flushSafe(ctx context.Context, batch []*fanoutPayload) {
	if len(batch) == 0 {
		return
	}

	// Multiple events for the same lesson collapse into one refresh.
	seen := map[string]bool{}
	for _, p := range batch {
		if seen[p.LessonID] {
			continue
		}
		seen[p.LessonID] = true

		if err := w.refreshLesson(ctx, p); err != nil {
			w.log.Error().Err(err).Str("lesson_id", p.LessonID).Msg("Fan-out failed, requeueing")
			raw, _ := json.Marshal(p)
			w.rdb.RPush(ctx, config.WorkerKey.LessonFanoutQueue, raw)
		}
	}
}

// refreshLesson rewrites the embedded entry for one lesson across all
// classes that carry it. A deleted lesson is removed from every class.
func (w *FanoutWorker) refreshLesson(ctx context.Context, p *fanoutPayload) error {
	lessonID, err := uuid.Parse(p.LessonID)
	if err != nil {
		return err
	}

	var name string
	var examIDs []uuid.UUID
	err = w.pool.QueryRow(ctx,
		`SELECT name, exam_ids FROM lessons WHERE id = $1`, lessonID,
	).Scan(&name, &examIDs)
	if errors.Is(err, pgx.ErrNoRows) {
		// Lesson is gone: strip its entry from every class.
		_, delErr := w.pool.Exec(ctx,
			`UPDATE classes
			 SET lessons = (
			     SELECT COALESCE(jsonb_agg(entry), '[]'::jsonb)
			     FROM jsonb_array_elements(lessons) AS entry
			     WHERE entry->>'lesson_id' <> $1::text
			 ),
			 updated_at = NOW()
			 WHERE lessons @> jsonb_build_array(jsonb_build_object('lesson_id', $1::text))`,
			lessonID,
		)
		return delErr
	}
	if err != nil {
		return err
	}

	entry, err := json.Marshal(map[string]any{
		"lesson_id": lessonID.String(),
		"name":      name,
		"exam_ids":  examIDs,
	})
	if err != nil {
		return err
	}

	_, err = w.pool.Exec(ctx,
		`UPDATE classes
		 SET lessons = (
		     SELECT jsonb_agg(
		         CASE WHEN entry->>'lesson_id' = $1::text THEN $2::jsonb ELSE entry END
		     )
		     FROM jsonb_array_elements(lessons) AS entry
		 ),
		 updated_at = NOW()
		 WHERE lessons @> jsonb_build_array(jsonb_build_object('lesson_id', $1::text))`,
		lessonID, entry,
	)
	if err == nil {
		w.log.Debug().Str("lesson_id", p.LessonID).Msg("Class entries refreshed")
	}
	return err
}
