// Package siri defines the SIRI (Service Interface for Real-time Information)
// VehicleMonitoring types produced from the merged realtime feed.
//
// SIRI is a European standard (CEN/TS 15531) for real-time public transport
// information. Only the VehicleMonitoringDelivery (VM) module is modelled.
package siri
