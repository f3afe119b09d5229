// Package roster imports a class list from CSV.
//
// Parse reads the file and validates each row on its own; a bad row is
// reported and skipped without rejecting the rest. BuildPlan then matches
// rows against the students already stored and decides which to add and
// which to update. Writing the plan is left to the caller, one student at
// a time.
//
// Recognized columns (header names are trimmed and case-insensitive):
//
//	first_name, last_name          required
//	student_local_id               optional; becomes the student id
//	preferred_name                 optional
//	pronouns_subject, pronouns_object, pronouns_possessive
//	needs                          optional, semicolon separated ("IEP;ELL")
package roster
