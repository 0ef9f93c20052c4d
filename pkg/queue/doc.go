// Package queue runs named jobs in the background.
//
// Handlers are registered by name with a typed payload decoded from JSON:
//
//	queue.Register(q, "podcast.process", func(ctx context.Context, p ProcessPodcast) error {
//		return p.Run(ctx)
//	})
//	err := q.Dispatch(ctx, "podcast.process", ProcessPodcast{ID: 7}, queue.Delay(time.Minute))
//
// River stores jobs in Postgres and runs them on worker goroutines. Sync runs
// them inline, which suits tests and applications without a database. Both
// run cron schedules:
//
//	q.Schedule("reports.daily", "0 6 * * *", sendReports)
//
// NewMailQueue connects the mailer so Mailer.Queue sends in the background.
package queue
