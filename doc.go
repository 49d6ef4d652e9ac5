// A Pokédex for the command line and the desktop.
//
// This program looks up Pokémon on the public PokeAPI service
// (https://pokeapi.co) and shows their number, size, types, abilities, base
// stats and official artwork. Lookups can happen from the command line, over
// a small local HTTP interface, or in a GTK3-based GUI. Fetched data is kept
// in an on-disk cache, so repeated lookups (and browsing of anything already
// seen) don't hit the network again.
//
// See the README.md for usage info and the Dockerfile for the container
// build.
package pokedex
