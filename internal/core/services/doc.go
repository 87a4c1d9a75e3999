// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// The retriever owns the vector index, the session service owns chat
// history, and the chat service combines both with the LLM for one turn.
package services
