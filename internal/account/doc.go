// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Quillboard Contributors

// Package account implements user registration and login for Quillboard.
//
// # Domain Types
//
// A User is created only through Service.Register; the flow never updates
// or deletes records. Passwords are stored exclusively as bcrypt hashes.
//
// # Services
//
// Service orchestrates the credential flow:
//   - Register - validate input, enforce username uniqueness, hash the
//     password, persist the record, and issue a session token
//   - Login - validate input, verify the password against the stored hash,
//     and issue a session token
//
// Expected flow outcomes (bad input, duplicate username, unknown user,
// wrong password) surface as *FlowError values carrying a kind and a
// field→message list suitable for form display. Infrastructure failures
// (store, signing) are wrapped with oops codes and propagate as-is.
package account
