// Package connpager implements keyset pagination following the connection
// pattern: first/after and last/before arguments, lazily resolved
// hasNextPage/hasPreviousPage flags and per-node cursors.
//
// Overview
//
// A CursorPager holds the arguments of one request. Paginate validates them,
// makes the requested ordering total by appending the primary key of the
// collection (see Normalize) and fetches the page from a DataSource with a
// single lookahead query. Cursors are compared lexicographically over the
// normalized order, so every page boundary is exclusive and stable under
// inserts and deletes.
//
// Key concepts
//   - DataSource: storage abstraction. GORMSource, SQLSource (squirrel over
//     database/sql) and SliceSource (in-memory) are provided.
//   - Predicate: And/Or/Compare tree used both for caller filters and for
//     cursor conditions. Fields may reference joined relations with
//     "$relation.field$".
//   - Connection: the page. HasNextPage and HasPreviousPage issue at most one
//     probe query each; PageInfo resolves both concurrently.
//   - Getters: maps field references to node values for building cursors.
//
// See examples/ for usage.
package connpager
