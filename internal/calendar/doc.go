// Package calendar adapts the Google Calendar API to schedulr.
//
// The Client lists the account's calendars, queries free/busy information
// and inserts events. FreeSlots turns busy periods into offerable free
// slots and Recorder saves confirmed meetings to the primary calendar.
//
//	httpClient, err := google.HTTPClient(ctx, provider, creds, "default")
//	if err != nil {
//	    return err
//	}
//	client, err := calendar.NewClient(ctx, "default", metrics, option.WithHTTPClient(httpClient))
//	if err != nil {
//	    return err
//	}
//	slots, err := calendar.FreeSlots(ctx, client, time.Now(), 7*24*time.Hour, interval.DefaultMinGap)
package calendar
