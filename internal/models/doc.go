// Package models defines the core domain models for the PIX stream service.
//
// # Models
//
//   - PixMessage / Participant: the wire shape of a payment notification,
//     nested camelCase JSON as clients see it
//   - StoredMessage: the flat storage row, one column per field, including
//     the claim tag (StreamID) that the wire shape never exposes
//   - Stream: one consumer's bounded-concurrency pull context for an ISPB
//   - Interaction: a checkpoint in a stream's append-only delivery log
//
// # Design Principles
//
//  1. **Two representations, one projection**: storage rows are flat and
//     snake_case in the database; the wire package owns the only mapping
//     into the nested JSON shape. Nothing else converts between the two.
//  2. **Opaque tokens**: interaction ids are opaque strings (UUIDs with
//     dashes stripped). Callers never parse them.
//  3. **Append-only history**: interactions are immutable once written;
//     delivery state advances by minting new tokens, never by editing.
package models
