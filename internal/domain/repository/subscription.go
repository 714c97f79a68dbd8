package repository

// CancelFunc detaches a live subscription. After it returns, the subscription
// delivers no further updates or errors. Calling it more than once is safe.
type CancelFunc func()
