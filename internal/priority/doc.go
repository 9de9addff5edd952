// Package priority converts between numeric task priorities and their names.
//
// Ordinals run from 1 (Urgent) to 4 (Low). Values outside that range have no
// name and are never mapped to a default. Tool results replace the ordinal
// with its name so an agent does not have to know which end is urgent.
package priority
