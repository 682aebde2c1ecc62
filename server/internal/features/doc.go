// Package features derives the payment-history columns the classifier
// expects from the six monthly statuses of a request.
//
// Derive is pure: the three counts always sum to six and Consistency is 1
// only when every month carries the same status.
package features
