// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package devserver is a development backend for the sync API.
//
// It stores chat history and sequences in SQLite and answers chat messages
// with a keyword classifier and a naive step generator, so the client can be
// run end to end without the real service. Routes:
//
//	POST   /api/classify
//	POST   /api/chat
//	GET    /api/load?user_id=ID
//	PUT    /api/sequence/update
//	DELETE /api/delete_history?user_id=ID
//	GET    /health
package devserver
