// Package discovery locates test station backends on the local network
// via mDNS/DNS-SD.
//
// Stations advertise themselves under the service type
// "_teststation._tcp" in the "local" domain. The TXT record carries the
// station identity (station id, cell, test type, firmware) so a
// dashboard can list stations without opening a connection first.
//
// The Browser aggregates responses by instance name: a station answering
// on several interfaces yields one entry with all of its addresses.
package discovery
