// Package actions provides ready-made capabilities for the action registry.
//
// Actions report user-facing problems (missing parameters, upstream failures)
// in their result text so the model can react to them. Only programming
// errors surface as Go errors.
package actions
