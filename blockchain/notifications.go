// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"fmt"

	"github.com/chainforge/chainforge/util/chainhash"
	"github.com/chainforge/chainforge/wire"
)

// NotificationType represents the type of a notification message.
type NotificationType int

// NotificationCallback is used for a caller to provide a callback for
// notifications about various chain events.
type NotificationCallback func(*Notification)

// Constants for the type of a notification message.
const (
	// NTBlockAdded indicates a block has been committed to the chain.
	// The data is a BlockAddedNotificationData.
	NTBlockAdded NotificationType = iota

	// NTChainChanged indicates the best-chain head has moved. The data
	// is a ChainChangedNotificationData.
	NTChainChanged
)

// notificationTypeStrings is a map of notification types back to their
// constant names for pretty printing.
var notificationTypeStrings = map[NotificationType]string{
	NTBlockAdded:   "NTBlockAdded",
	NTChainChanged: "NTChainChanged",
}

// String returns the NotificationType in human-readable form.
func (n NotificationType) String() string {
	if s, ok := notificationTypeStrings[n]; ok {
		return s
	}
	return fmt.Sprintf("Unknown Notification Type (%d)", int(n))
}

// BlockAddedNotificationData defines data to be sent along with a
// NTBlockAdded notification. It is sent for every committed block,
// including blocks that extend a side branch without changing the head.
type BlockAddedNotificationData struct {
	Block *wire.Block

	// WasUnorphaned is set when the block spent time in the orphan pool
	// before being committed.
	WasUnorphaned bool
}

// ChainChangedNotificationData defines data to be sent along with a
// NTChainChanged notification.
type ChainChangedNotificationData struct {
	OldHeadHash chainhash.Hash
	NewHeadHash chainhash.Hash

	// DetachedChainBlockHashes lists the blocks that left the best
	// chain, ordered from the old head down toward the fork point. It is
	// empty when the new head extends the old one.
	DetachedChainBlockHashes []chainhash.Hash

	// AttachedChainBlockHashes lists the blocks that joined the best
	// chain, ordered from just above the fork point up to the new head.
	AttachedChainBlockHashes []chainhash.Hash
}

// Notification defines a notification that is sent to the caller via the
// callback function provided during the call to New and consists of a
// notification type as well as associated data that depends on the type.
type Notification struct {
	Type NotificationType
	Data interface{}
}

// Subscribe to chain notifications. Registers a callback to be executed
// when various events take place. See the documentation on Notification
// and NotificationType for details on the types and contents of
// notifications.
func (c *Chain) Subscribe(callback NotificationCallback) {
	c.notificationsLock.Lock()
	defer c.notificationsLock.Unlock()
	c.notifications = append(c.notifications, callback)
}

// sendNotification sends a notification with the passed type and data if
// the caller requested notifications by providing a callback function in
// the call to New.
func (c *Chain) sendNotification(typ NotificationType, data interface{}) {
	// Generate and send the notification.
	n := Notification{Type: typ, Data: data}
	c.notificationsLock.RLock()
	for _, callback := range c.notifications {
		callback(&n)
	}
	c.notificationsLock.RUnlock()
}
