// Package domain models weather-station telemetry and the enriched
// humidity observations derived from it.
//
// # Telemetry Source
//
// Readings originate from field stations that publish one JSON document
// per report, either to a Kafka topic or an MQTT broker depending on the
// deployment. Temperature is the only mandatory channel; humidity may
// arrive as relative humidity, as a sensor dewpoint, or both, and
// pressure and battery voltage are optional. Optional channels are
// pointer fields so "absent" and "zero" stay distinguishable after
// unmarshaling.
//
// # Channel Conventions
//
// Humidity channels:
//
//	humidity_pct: relative humidity in percent, 0-100.
//	dewpoint_c:   sensor-computed dewpoint in °C.
//	At least one must be present. When both are, relative humidity is
//	the primary channel and the dewpoint is recomputed from it so the
//	published quantities agree with each other.
//
// Pressure:
//
//	pressure_hpa is station (absolute) pressure in hectopascals, not a
//	sea-level reduced value. Sea-level reduction happens during
//	directory enrichment, once the station elevation is known.
//
// Temperature domain:
//
//	Readings are rejected when temperature (or a reported dewpoint)
//	falls outside the coefficient domain of the saturation formulation,
//	since derived quantities are only accurate inside it.
//
// Comfort classification:
//
//	Derived from dewpoint using the bands common in public forecasting:
//
//	  <10 °C dry | 10-16 comfortable | 16-21 muggy | ≥21 oppressive
//
//	A reading with zero humidity has no finite dewpoint and counts as dry.
//
// # ID Generation
//
// Observation IDs are deterministic SHA-256 hashes of
// station|timestamp|sequence. This enables idempotent upserts downstream
// (ON CONFLICT DO NOTHING) and replay safety without distributed
// coordination. See [generateID].
package domain
