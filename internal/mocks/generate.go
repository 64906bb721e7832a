// Package mocks provides mock implementations for testing the studio auth system.
//
// This package uses go.uber.org/mock (gomock) to generate type-safe mocks for
// port interfaces that benefit from call expectations. Simpler ports use the
// hand-written doubles in the auth subpackage instead.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	defer ctrl.Finish()
//	mockPayments := mocks.NewMockPaymentStatusService(ctrl)
//	mockPayments.EXPECT().HasActivePayment(gomock.Any(), "user-1").Return(true, nil)
package mocks

// Generate mock for PaymentStatusService interface from internal/ports.
// This creates MockPaymentStatusService with HasActivePayment.
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=payment_status_mock.go github.com/target/studio-ui-auth/internal/ports PaymentStatusService
