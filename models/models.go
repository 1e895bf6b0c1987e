package models

// This file serves as the central export point for all database models
// Import this package to access all model types

// Database schema overview:
// 1. users - Staff accounts (admin, hr, invigilator, manager) with cookie-based authentication
// 2. jobs - Job postings a candidate applies against, including configured grading parameters
// 3. candidates - The pipeline subjects: one active stage, one orthogonal status
// 4. documents - Candidate document records (storage itself lives with an external provider)
// 5. stage_history_entries - Append-only ledger of pipeline transitions and status actions
// 6. internal_feedback_entries - Staff-only free-text notes attached to a candidate
// 7. glory_grades - Per-role qualitative grading records (A+..E), one row per candidate per role
// 8. submissions / question_responses - HR questionnaire and assessment answers with review fields
// 9. interviews / interview_remarks - Scheduled interviews and per-interviewer remarks
// 10. email_preferences / push_subscriptions - Notification preference records
