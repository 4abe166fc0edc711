// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"net/http"
	"slices"
)

// CORSAllowHeaders is the request header list accepted by the public
// contact endpoint. It includes the headers sent by the hosted client SDK.
const CORSAllowHeaders = "authorization, x-client-info, apikey, content-type, " +
	"x-supabase-client-platform, x-supabase-client-platform-version, " +
	"x-supabase-client-runtime, x-supabase-client-runtime-version"

// CORS sets the cross-origin headers for public endpoints and answers
// preflight requests with 200 and no body. An origin list containing "*"
// allows every origin.
func CORS(origins []string) func(http.Handler) http.Handler {
	wildcard := len(origins) == 0 || slices.Contains(origins, "*")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			switch {
			case wildcard:
				h.Set("Access-Control-Allow-Origin", "*")
			default:
				origin := r.Header.Get("Origin")
				if origin != "" && slices.Contains(origins, origin) {
					h.Set("Access-Control-Allow-Origin", origin)
				}
				h.Add("Vary", "Origin")
			}
			h.Set("Access-Control-Allow-Headers", CORSAllowHeaders)
			h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
