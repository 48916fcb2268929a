// Package domain holds the pure marketplace model: participant roles,
// catalog listings, commission arithmetic, and the order/escrow state
// machine. Nothing here touches storage, time sources, or transports;
// callers inject clocks and persist results through the storage contracts.
package domain
