// Package models defines the core domain models for runlog.
//
// # Models
//
//   - User: a registered account; owns runs
//   - Run: a submitted sequence plus three options, owned by one User
//   - Page: one page of an ordered query result
//
// # Design Principles
//
//  1. **Opaque payloads**: Run.Sequence and the options are stored as given;
//     nothing in the system interprets them
//  2. **Single owner**: Run.AuthorID is set at creation and never reassigned
//  3. **Storage neutral**: models carry gorm tags for the ORM backend but no
//     behavior tied to a particular store
package models
