// Package market talks to the upstream item markets: it keeps the local price
// catalog in sync with the Skinport feed and resolves Steam inventories into
// priced, listable items.
package market
