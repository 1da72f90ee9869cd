// Package testutil starts throwaway backing services for integration tests.
package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const startupTimeout = 90 * time.Second

func startContainer(ctx context.Context, t *testing.T, req testcontainers.ContainerRequest, port nat.Port) (host, mapped string) {
	t.Helper()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		terminateCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		_ = container.Terminate(terminateCtx)
	})

	host, err = container.Host(ctx)
	require.NoError(t, err)

	mappedPort, err := container.MappedPort(ctx, port)
	require.NoError(t, err)

	return host, mappedPort.Port()
}

// StartPostgres returns a DSN for a fresh, empty database.
func StartPostgres(ctx context.Context, t *testing.T) string {
	t.Helper()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		Env:          map[string]string{"POSTGRES_PASSWORD": "postgres", "POSTGRES_USER": "postgres", "POSTGRES_DB": "cart"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(startupTimeout),
	}
	host, port := startContainer(ctx, t, req, "5432/tcp")
	return fmt.Sprintf("postgres://postgres:postgres@%s:%s/cart?sslmode=disable", host, port)
}

// StartRedis returns a host:port address.
func StartRedis(ctx context.Context, t *testing.T) string {
	t.Helper()

	req := testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(startupTimeout),
	}
	host, port := startContainer(ctx, t, req, "6379/tcp")
	return host + ":" + port
}

// StartRabbitMQ returns an AMQP URL for the default guest account.
func StartRabbitMQ(ctx context.Context, t *testing.T) string {
	t.Helper()

	req := testcontainers.ContainerRequest{
		Image:        "rabbitmq:3.13-alpine",
		ExposedPorts: []string{"5672/tcp"},
		WaitingFor:   wait.ForListeningPort("5672/tcp").WithStartupTimeout(startupTimeout),
	}
	host, port := startContainer(ctx, t, req, "5672/tcp")
	return fmt.Sprintf("amqp://guest:guest@%s:%s/", host, port)
}
