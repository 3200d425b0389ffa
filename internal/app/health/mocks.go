package health

import (
	"context"

	"gscgateway/pkg/logger"
	"gscgateway/pkg/oauth2"

	"github.com/stretchr/testify/mock"
)

type MockCacheChecker struct {
	mock.Mock
}

func (m *MockCacheChecker) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockCacheChecker) Close() error {
	args := m.Called()
	return args.Error(0)
}

type MockCredentialsChecker struct {
	mock.Mock
}

func (m *MockCredentialsChecker) Credentials() (oauth2.ClientCredentials, error) {
	args := m.Called()
	return args.Get(0).(oauth2.ClientCredentials), args.Error(1)
}

type MockLogger struct{}

func (m *MockLogger) Info(ctx context.Context, msg string, fields ...logger.Field) {}

func (m *MockLogger) Error(ctx context.Context, msg string, fields ...logger.Field) {}

func (m *MockLogger) Debug(ctx context.Context, msg string, fields ...logger.Field) {}

func (m *MockLogger) Warn(ctx context.Context, msg string, fields ...logger.Field) {}

func (m *MockLogger) With(fields ...logger.Field) logger.Logger {
	return m
}
