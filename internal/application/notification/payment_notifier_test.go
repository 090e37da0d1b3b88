package notification

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/biasharahub/backend/internal/domain/payment"
	"github.com/biasharahub/backend/internal/domain/shared/valueobject"
)

// MockSender is a mock implementation of Sender
type MockSender struct {
	mock.Mock
}

func (m *MockSender) Send(ctx context.Context, phone, message string) error {
	args := m.Called(ctx, phone, message)
	return args.Error(0)
}

func completedPayment(t *testing.T) *payment.Payment {
	t.Helper()
	p, err := payment.NewPayment(uuid.New(), uuid.New(), "254712345678",
		valueobject.NewMoneyKES(decimal.NewFromInt(1000)), payment.MethodMpesa)
	require.NoError(t, err)
	require.NoError(t, p.MarkCompleted("SBE12XYZ99"))
	return p
}

func TestHandleCompletedSendsReceipt(t *testing.T) {
	sender := new(MockSender)
	notifier := NewPaymentNotifierWithSender(sender)
	p := completedPayment(t)

	sender.On("Send", mock.Anything, "254712345678", mock.MatchedBy(func(msg string) bool {
		return msg == "Payment of KES 1000.00 received. Receipt SBE12XYZ99"
	})).Return(nil)

	events := p.GetDomainEvents()
	require.Len(t, events, 1)
	assert.NoError(t, notifier.Handle(context.Background(), events[0]))
	sender.AssertExpectations(t)
}

func TestHandleWithoutSenderLogsOnly(t *testing.T) {
	notifier := NewPaymentNotifier()
	p := completedPayment(t)

	assert.NoError(t, notifier.Handle(context.Background(), p.GetDomainEvents()[0]))
}

func TestHandleFailedEventDoesNotSend(t *testing.T) {
	sender := new(MockSender)
	notifier := NewPaymentNotifierWithSender(sender)

	p, err := payment.NewPayment(uuid.New(), uuid.New(), "254712345678",
		valueobject.NewMoneyKES(decimal.NewFromInt(1000)), payment.MethodMpesa)
	require.NoError(t, err)
	require.NoError(t, p.MarkFailed("Request cancelled by user"))

	events := p.GetDomainEvents()
	require.Len(t, events, 1)
	assert.NoError(t, notifier.Handle(context.Background(), events[0]))
	sender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything)
}

func TestSenderErrorPropagates(t *testing.T) {
	sender := new(MockSender)
	notifier := NewPaymentNotifierWithSender(sender)
	p := completedPayment(t)

	sender.On("Send", mock.Anything, mock.Anything, mock.Anything).
		Return(errors.New("sms provider down"))

	err := notifier.Handle(context.Background(), p.GetDomainEvents()[0])
	assert.Error(t, err)
}

func TestEventTypes(t *testing.T) {
	notifier := NewPaymentNotifier()
	assert.Equal(t, []string{payment.EventTypePaymentCompleted, payment.EventTypePaymentFailed}, notifier.EventTypes())
}
