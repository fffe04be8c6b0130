/*
Package domain contains the core types shared by every parlance component.

It defines the conversation primitives (Turn, SideChannelEntry), the parsed model
Decision, the persisted session Snapshot, the reserved state identifiers and the
error kinds raised by the engine. This package has no I/O and no third-party
dependencies.

# Key Entities

  - Turn: one element of the primary transcript (user, assistant or system).
  - SideChannelEntry: one element of the secondary transcript (e.g. search output).
  - Decision: the structured response of a single model invocation.
  - Snapshot: a serializable view of a session used by state stores.
*/
package domain
