// Package volatix wires together the storage engine, the TCP server, and
// the snapshot persistence loop into a single runnable cache instance.
//
// Construct one with New and the WithXxx options, then Start it:
//
//	v, err := volatix.New(volatix.WithAddr(":7878"))
//	if err != nil {
//		log.Fatal(err)
//	}
//	if err := v.Start(); err != nil {
//		log.Fatal(err)
//	}
//	defer v.Close()
package volatix
