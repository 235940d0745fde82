// Package sitepush submits sitemap URLs to the Google Indexing API on
// behalf of multiple service accounts, spreading the work across each
// account's OAuth credentials according to their daily request budgets.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., sqlite/, http/, oauth/) while
// dependency-free orchestration lives in packages named after what it
// does (quota/, worklist/, submit/).
package sitepush
