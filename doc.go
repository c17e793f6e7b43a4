// Copyright 2016 by Thorsten von Eicken, see LICENSE file

// github.com/tuliogomesp/Floripasat-Project contains the FloripaSat beacon software: a driver for the
// TI CC1125 transceiver (cc112x), its register level simulator (cc112x/sim), the watchdog supervised
// beacon control loop (beacon) and the supervisory timers it keeps alive (watchdog). The package itself
// holds a small shim over embd so the beacon can run on boards periph does not support. The binaries
// live in the cmd directory tree.
package floripasat
