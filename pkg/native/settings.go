package native

import "context"

// OpenAppSettings opens the system settings page for this app, where users
// can manage permissions manually. Use this from an OnPermanentlyDenied
// callback, when the platform will no longer show its own dialog.
//
// On iOS, opens the Settings app to the app's settings page.
// On Android, opens the App Info screen in system settings.
// The ctx parameter is currently unused and reserved for future cancellation
// support.
func OpenAppSettings(ctx context.Context) error {
	channel := NewMethodChannel(MethodChannelName)
	_, err := channel.Invoke("openSettings", nil)
	return err
}
