/*
Package ports defines the boundaries between the engine and its host.

# Key Interfaces

  - MessageSink: receives the agent message of every iteration and system notices.
  - InputSource: supplies user input when a decision requires it.
  - SessionStore: persists session snapshots so a conversation can be resumed.
*/
package ports
