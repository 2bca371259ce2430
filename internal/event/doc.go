// Package event defines the wire format of the push channel.
//
// Every frame is one UTF-8 JSON object tagged by "type". The set of types is
// closed; decoding an unknown tag yields a no-op envelope rather than an
// error so older clients survive newer servers.
package event
