// Package core contains the canonical repowatch domain contracts, entities,
// and the administrative service over trust and subscription records. Adapter
// packages depend on this package; core must not depend on transport-specific
// or storage-specific adapters.
package core
