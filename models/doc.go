// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Request Types

Types for parsing incoming JSON:

  - StartSessionRequest: agree ("yes" / "no")
  - IdentifyRequest: name, tel1, tel2, tel3
  - SaveAnswersRequest: answers (map of "code_field" to value)

# Response Types

Types for JSON responses:

  - StartSessionResponse: session_id, next
  - IdentifyResponse: codes, next
  - SaveAnswersResponse: next, progress
  - SubmitResponse: submitted, message
  - PageView / PageItem: one wizard page with first-round aggregates
  - PageStats: means, closest ranges and modes for a page
  - StatusRow, SummaryRow: admin tables
  - ErrorResponse: error, message

# Domain Types

  - Response: one respondent × code × round, answers kept as a map
  - Industry: classification catalog entry with patent metrics

Response.Row flattens a response into a formstats.Row so the
aggregation functions can group it by code.

# Constants

Survey rounds:

	RoundFirst  = 1
	RoundSecond = 2

Consent:

	AgreeYes = "yes"
	AgreeNo  = "no"
*/
package models
