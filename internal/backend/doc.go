// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package backend is the HTTP/JSON client for the helix sync API.
//
// It is the only code that talks to the remote service. Each operation is a
// single request; nothing is retried. Failures are returned as *TransportError
// so callers can apply their own policy at the call site.
//
// # Routes
//
//	POST   /api/classify              {message}                            -> {intent}
//	POST   /api/chat                  {message, user_id}                   -> {reply, intent?, sequence, sequenceId}
//	GET    /api/load?user_id=ID                                            -> {chat_history, sequences}
//	PUT    /api/sequence/update       {sequenceId, stepNumber, field, value}
//	DELETE /api/delete_history?user_id=ID
//
// # Usage
//
//	client := backend.NewClient("http://127.0.0.1:5000").
//	    WithTimeout(30 * time.Second).
//	    WithRateLimit(10, 20)
//
//	intent := client.ClassifyIntent(ctx, text)
//	reply, err := client.SendMessage(ctx, userID, text)
package backend
