package domain

// NotificationKind тип уведомления, отправляемого студенту
type NotificationKind string

const (
	NotificationWaitlisted NotificationKind = "WAITLISTED"
	NotificationPromoted   NotificationKind = "PROMOTED"
	NotificationExpired    NotificationKind = "EXPIRED"
)
