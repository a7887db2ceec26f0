// Package mocks provides centralized mock implementations for testing.
//
// Instead of defining inline mocks in individual test files, tests across
// packages share these implementations of the engine's collaborator
// interfaces: the JWT service, the payment gateway and the notification sink.
//
// Usage:
//
//	gw := &mocks.MockGateway{}
//	gw.On("Confirm", mock.Anything, mock.Anything).
//	    Return(nil, payment.NewGatewayError("mock", "confirm", "", "down", nil))
//
//	svc := service.NewPaymentService(db, db.Stores(), gw, emitter, "", logger)
//
// When adding a new mock to this package:
//  1. Create a new file named after the interface being mocked
//  2. Use testify's mock.Mock for call expectations, or function fields when
//     a test only needs to stub return values
//  3. Assert the interface is satisfied with a var _ line
package mocks
