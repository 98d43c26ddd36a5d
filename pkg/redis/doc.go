// Package redis connects to Redis with go-redis/v9. The client backs the
// shared tenant cache in tenantstore, so every application instance sees
// the same tenant records after an update is invalidated.
//
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer client.Close()
package redis
