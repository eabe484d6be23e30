// Package query is a keyed result cache for read endpoints with tag-based
// invalidation after mutations.
//
// A Query names an endpoint, the tags its results provide, and a fetch
// function. Results are stored per Key(name, args). Equal keys share one
// in-flight request and one stored result. A Mutation names the tags it
// invalidates; after it succeeds every matching entry is marked stale,
// entries with live subscribers are refetched in the background and the
// rest are refetched the next time someone reads them.
//
// Subscriptions observe one entry at a time. Changing a subscription's
// arguments moves it to another entry; results that arrive for the old
// arguments are not delivered. A skipped subscription issues no request
// and stays pending.
package query
