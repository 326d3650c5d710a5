package testmongo

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go/modules/mongodb"
)

// StartMongo starts a disposable MongoDB container and returns its connection URI.
func StartMongo(tb testing.TB) string {
	tb.Helper()

	ctx := context.Background()
	container, err := mongodb.Run(ctx, "mongo:7")
	if err != nil {
		tb.Fatalf("start mongodb container: %v", err)
	}

	tb.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := container.Terminate(ctx); err != nil {
			tb.Errorf("terminate mongodb container: %v", err)
		}
	})

	uri, err := container.ConnectionString(ctx)
	if err != nil {
		tb.Fatalf("build mongodb connection string: %v", err)
	}

	return uri
}

// DBName returns a database name unique to the running test so tests sharing
// a container never see each other's collections.
func DBName(tb testing.TB) string {
	tb.Helper()
	name := strings.NewReplacer("/", "_", " ", "_", "#", "_").Replace(tb.Name())
	return fmt.Sprintf("%s_%d", name, time.Now().UnixNano())
}
