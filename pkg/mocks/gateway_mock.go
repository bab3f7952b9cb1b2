package mocks

import (
	"context"

	"github.com/cadenzahq/cadenza/pkg/protocol"
	"github.com/stretchr/testify/mock"
)

// MockEmailGateway is a mock implementation of protocol.EmailGateway.
type MockEmailGateway struct {
	mock.Mock
}

func (m *MockEmailGateway) Send(ctx context.Context, msg protocol.EmailMessage) (protocol.DeliveryResult, error) {
	args := m.Called(ctx, msg)

	return args.Get(0).(protocol.DeliveryResult), args.Error(1)
}

// MockSMSGateway is a mock implementation of protocol.SMSGateway.
type MockSMSGateway struct {
	mock.Mock
}

func (m *MockSMSGateway) Send(ctx context.Context, msg protocol.SMSMessage) (protocol.DeliveryResult, error) {
	args := m.Called(ctx, msg)

	return args.Get(0).(protocol.DeliveryResult), args.Error(1)
}

// MockCRMGateway is a mock implementation of protocol.CRMGateway.
type MockCRMGateway struct {
	mock.Mock
}

func (m *MockCRMGateway) Write(ctx context.Context, record protocol.CRMRecord) (protocol.DeliveryResult, error) {
	args := m.Called(ctx, record)

	return args.Get(0).(protocol.DeliveryResult), args.Error(1)
}
