// Package domain contains the core domain model for Kipu.
//
// The domain is transport- and persistence-agnostic: it does not depend on YAML parsing,
// JSONPath evaluation, or the filesystem. Infra/adapters map into/from these types.
//
// The seq/record functions are the heart of the package: pure, non-mutating
// transformations that always return fresh containers and never touch their inputs.
package domain
