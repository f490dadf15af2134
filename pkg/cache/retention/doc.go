// Package retention prunes expired entries from the cold cache tier on a
// cron schedule.
//
// The cold tier keeps expired blobs readable (the cache manager ignores
// them) until a prune removes them:
//
//	scheduler := retention.NewScheduler(cacheManager, "@hourly", logger)
//	if err := scheduler.Start(ctx); err != nil {
//		return err
//	}
//	defer scheduler.Stop()
package retention
