// Package packages builds the repository catalog shown by the package browser.
//
// Building a catalog takes three steps:
//   - Enumerator runs `<pkgmgr> repolist`, keeps the leading token of every
//     line and drops the header row
//   - Querier runs `<pkgmgr> repoquery --repo <id> -q --qf %{name}` per repository
//   - Builder fans the queries out over a bounded worker group and joins the
//     results in enumerator order
//
// A repository whose query fails is skipped and recorded in Catalog.Failures;
// the rest of the catalog is still returned. Only a failed enumeration aborts
// a build.
//
// Store keeps the latest catalog for the HTTP layer and collapses concurrent
// refreshes into a single build.
package packages
