// Package template is the default modelproxy mock engine. It turns a rule
// fixture into mock data by walking the fixture and expanding {{expression}}
// placeholders found in string values.
//
// # Built-in Variables
//
// Time-related:
//   - {{now}} - Current time in RFC3339 format
//   - {{timestamp}} - Current Unix timestamp
//   - {{timestamp.iso}} - Current UTC time, RFC3339 with nanoseconds
//   - {{timestamp.unix_ms}} - Current Unix timestamp in milliseconds
//
// Random values:
//   - {{uuid}} - Random UUID v4
//   - {{uuid.short}} - First 8 characters of a random UUID
//   - {{random.int}} - Random integer 0-100
//   - {{random.int(min, max)}} - Random integer in range [min, max]
//   - {{random.float}} - Random float 0.0-1.0
//   - {{random.float(min, max)}} - Random float in range
//   - {{random.string}} / {{random.string(N)}} - Random alphanumeric string
//   - {{faker.name}}, {{faker.email}}, {{faker.phone}} ... - Sample data
//
// Sequences:
//   - {{sequence("name")}} / {{sequence("name", start)}} - Auto-incrementing counter
//
// A string that consists of exactly one expression producing a number or a
// boolean (random.int, random.float, sequence, timestamp, faker.boolean) is
// replaced by the typed value instead of its text.
//
// # Repeat Keys
//
// Object keys may carry a repeat suffix in the style of mock.js rules:
//
//	{"items|3": [{"id": "{{sequence(\"item\")}}"}]}  // three generated items
//	{"tags|1-5": ["a", "b"]}                         // 1 to 5 items, cycling
//	{"stars|4": "*"}                                 // "****"
//
// The suffix is removed from the generated key.
package template
