// Package sanitizer normalizes operator-entered booking data before
// validation: student and teacher names, holiday labels, lesson notes and
// contact phone numbers. Sanitization is lossy on purpose; validation runs
// on the sanitized value.
package sanitizer
