// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package openai provides the OpenAI completion and chat-completion client.
//
// Each supported model belongs to exactly one Family. The family decides
// the endpoint path, the request body and the success response schema:
//
//   - text-davinci-003: POST /completions, reads choices[0].text
//   - gpt-3.5-turbo:    POST /chat/completions, reads choices[0].message.content
//
// Error bodies share one shape, {"error":{"message":...}}, for both families.
//
// # Key Types
//
//   - Client: sends one prompt and returns the generated text
//   - Call: future returned by SendAsync, with Cancel and Wait
//   - Family: closed set of endpoint/schema variants
//   - TransportError, APIError, ParseError: failure taxonomy
//
// Family.ParseResponse reads a success body and ErrorMessage reads an
// error body; both are pure functions of the bytes.
//
// # Usage
//
//	client := openai.New(cfg).WithTimeout(30 * time.Second)
//	call := client.SendAsync(ctx, "hello")
//	text, err := call.Wait(ctx)
//
//	var apiErr *openai.APIError
//	if errors.As(err, &apiErr) {
//	    fmt.Println("server said:", apiErr.Message)
//	}
package openai
